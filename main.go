package main

import "github.com/ibher16/antrian-lab-ibsi/cmd"

func main() {
	cmd.Execute()
}
