package main

import (
	"github.com/dmcconeghy/CL-backend-assessment/cmd"
)

func main() {
	cmd.Execute()
}
