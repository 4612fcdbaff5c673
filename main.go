/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/mautops/payment-ledger/cmd"

func main() {
	cmd.Execute()
}
