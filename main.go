package main

import (
	"os"

	"postboard/service"
)

func main() {
	os.Exit(service.Execute())
}
