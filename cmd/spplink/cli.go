package main

import "flag"

// Options holds CLI options for the sender.
type Options struct {
	ConfigPath string
	Peer       string
}

// ParseFlags parses CLI flags from args and returns Options.
func ParseFlags(args []string) Options {
	fs := flag.NewFlagSet("spplink", flag.ExitOnError)
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.StringVar(&opts.Peer, "peer", "", "Peer name or address to connect to on start")
	_ = fs.Parse(args)
	return opts
}
