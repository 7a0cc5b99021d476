package main

import "github.com/frahmantamala/care-management/cmd"

func main() {
	cmd.Execute()
}
