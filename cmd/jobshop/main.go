package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobShop/internal/cli"
)

func main() {
	// Прерывание останавливает поиск, лучшее найденное решение всё равно печатается.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
