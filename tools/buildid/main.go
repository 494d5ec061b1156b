package main

import (
	"fmt"
	"os"
	"time"

	"gridsync/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "now":
		date := time.Now().UTC().Format("2006-01-02")
		printID(date)
	case "date":
		if len(os.Args) < 3 {
			fmt.Println("Usage: buildid date <YYYY-MM-DD>")
			return
		}
		printID(os.Args[2])
	case "ldflags":
		// Строка для go build -ldflags на сегодняшнюю дату
		date := time.Now().UTC().Format("2006-01-02")
		fmt.Printf("-X gridsync/internal/version.BuildDate=%s\n", date)
	default:
		printHelp()
	}
}

func printID(date string) {
	version.BuildDate = date
	id, err := version.CalculateBuildID()
	if err != nil {
		fmt.Printf("Invalid date: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s -> build %d\n", date, id)
}

func printHelp() {
	fmt.Println(`Build ID - номер сборки gridsync по дате
Commands:
  now                - номер сборки на сегодня (UTC)
  date <YYYY-MM-DD>  - номер сборки на дату
  ldflags            - флаг компоновщика с сегодняшней датой`)
}
