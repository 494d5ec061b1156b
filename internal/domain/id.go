package domain

import (
	"fmt"
	"strconv"
)

// EntityID - 64-битный идентификатор сущности на сервере.
//
// Формат битов (от старших к младшим):
//
//	[ Generation (32) | Index (32) ]
//
// Где:
//   - Index - номер слота сущности в мире
//   - Generation - версия слота; увеличивается при каждом повторном
//     использовании индекса, поэтому устаревшие ссылки не совпадают
//     с новой сущностью в том же слоте
//
// Клиенты получают EntityID в сообщениях и возвращают их обратно в командах,
// но внутри клиента используют собственные локальные идентификаторы.
type EntityID uint64

// NilEntityID - отсутствие сущности. Поколение живых сущностей начинается с 1,
// поэтому ни одна живая сущность не получает нулевой ID.
const NilEntityID EntityID = 0

const (
	bitsIndex = 32
	bitsGen   = 32

	shiftGen = bitsIndex

	maskIndex = (1 << bitsIndex) - 1
	maskGen   = (1 << bitsGen) - 1
)

// PackEntityID создает ID из индекса слота и поколения.
func PackEntityID(index, generation uint32) EntityID {
	id := uint64(index) & maskIndex
	id |= (uint64(generation) & maskGen) << shiftGen
	return EntityID(id)
}

// Index возвращает номер слота.
func (id EntityID) Index() uint32 {
	return uint32(uint64(id) & maskIndex)
}

// Generation возвращает поколение слота.
func (id EntityID) Generation() uint32 {
	return uint32((uint64(id) >> shiftGen) & maskGen)
}

// IsNil сообщает, что ID не ссылается ни на какую сущность.
func (id EntityID) IsNil() bool {
	return id == NilEntityID
}

// MarshalJSON сериализует ID в строку, так как JS теряет точность для больших int64.
// Используется debug-эндпоинтами.
func (id EntityID) MarshalJSON() ([]byte, error) {
	s := strconv.FormatUint(uint64(id), 10)
	return []byte(`"` + s + `"`), nil
}

// UnmarshalJSON парсит строку или число из JSON
func (id *EntityID) UnmarshalJSON(data []byte) error {
	if len(data) > 1 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	val, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid entity id %q: %w", string(data), err)
	}
	*id = EntityID(val)
	return nil
}

// String для логов: [Idx:Gen]
func (id EntityID) String() string {
	if id.IsNil() {
		return "[nil]"
	}
	return fmt.Sprintf("[%d:%d]", id.Index(), id.Generation())
}
