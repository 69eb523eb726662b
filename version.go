package main

import (
	"fmt"

	"github.com/kliva/kliva/internal/version"
)

// printVersion 输出注入的版本 + 提交信息以及解析后的版本号。
func printVersion() {
	fmt.Fprintf(stdOut, "%s\nversion %s\n", version.Full(), version.Current())
}
