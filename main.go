package main

import "github.com/udelar-dtx/dtx_backend/cmd"

func main() {
	cmd.Execute()
}
