// cmd/genomecmp/main.go
package main

import (
	"genomecmp/internal/app"
	"genomecmp/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
