package main

import (
	"github.com/miraveja/miraveja/cmd"
	_ "github.com/miraveja/miraveja/cmd/all"
)

func main() {
	cmd.Execute()
}
