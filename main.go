// csim is a trace-driven simulator of a set-associative cache with LRU
// replacement.
package main

import "github.com/sarchlab/csim/cmd"

func main() {
	cmd.Execute()
}
