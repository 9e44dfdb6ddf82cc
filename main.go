package main

import "github.com/Alijeyrad/drivingschool_backend/cmd"

func main() {
	cmd.Execute()
}
