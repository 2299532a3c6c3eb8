package main

import "ngo-site-backend/cmd"

func main() {
	cmd.Run()
}
