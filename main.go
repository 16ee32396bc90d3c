package main

import (
	"os"

	"github.com/xhsauto/xhsauto/cmd"
	"github.com/xhsauto/xhsauto/internal/logutil"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logutil.Errorf("%v", err)
		os.Exit(1)
	}
}
