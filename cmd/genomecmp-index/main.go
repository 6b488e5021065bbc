// cmd/genomecmp-index/main.go
package main

import (
	"genomecmp/internal/appshell"
	"genomecmp/internal/indexapp"
)

func main() { appshell.Main(indexapp.RunContext) }
