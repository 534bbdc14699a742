package main

import "github.com/wagus-labs/agent-portal/cmd"

func main() {
	cmd.Execute()
}
