package main

import "credit-score/cli"

func main() {
	cli.Execute()
}
