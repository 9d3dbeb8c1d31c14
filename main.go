/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/suderio/arcane-ledger/cmd"

func main() {
	cmd.Execute()
}
