package main

import "github.com/Aslhee/MobileCafeServer/cmd"

func main() {
	cmd.Execute()
}
