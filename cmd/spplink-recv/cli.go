package main

import "flag"

// Options holds CLI options for the receiver.
type Options struct {
	ConfigPath string
	Listen     string
}

// ParseFlags parses CLI flags from args and returns Options.
func ParseFlags(args []string) Options {
	fs := flag.NewFlagSet("spplink-recv", flag.ExitOnError)
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.StringVar(&opts.Listen, "listen", "", "Listen address, overrides receiver.listen")
	_ = fs.Parse(args)
	return opts
}
