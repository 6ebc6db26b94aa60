// Package winpipe carries the byte stream over Windows named pipes using
// go-winio. It is only built on Windows.
package winpipe
