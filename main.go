package main

import "github.com/nervosnetwork/btcspv/cmd"

func main() {
	cmd.Execute()
}
