package main

import (
	"github.com/zbuildtool/zbuild/cmd/zbuild/internal"
)

func main() {
	internal.Execute()
}
