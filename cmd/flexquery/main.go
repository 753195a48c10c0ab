// Command flexquery runs condition queries against JSONL document dumps.
//
//	flexquery search --docs sessions.jsonl.zst "type = 'session'"
//	flexquery validate --schema age=int "age > '12' AND type = 'session'"
//	flexquery operators
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
