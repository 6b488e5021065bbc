// cmd/genomecmp-serve/main.go
package main

import (
	"genomecmp/internal/appshell"
	"genomecmp/internal/serveapp"
)

func main() { appshell.Main(serveapp.RunContext) }
