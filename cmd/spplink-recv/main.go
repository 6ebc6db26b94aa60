// Command spplink-recv accepts link streams and prints the pointer commands
// it receives.
package main

import "os"

func main() { os.Exit(run(ParseFlags(os.Args[1:]))) }
