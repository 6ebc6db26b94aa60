// Command spplink drives a link.Manager from stdin: it connects to a peer and
// sends pointer commands typed one per line.
package main

import "os"

func main() { os.Exit(run(ParseFlags(os.Args[1:]))) }
