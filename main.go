package main

import "github.com/hrmspro/hrms/cmd"

func main() {
	cmd.Execute()
}
