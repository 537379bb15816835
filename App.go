package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

const ExitCodeMainError = 1

const DefaultListenAddr = ":8080"

func RunApp() error {
	gin.SetMode(gin.ReleaseMode)

	container := BuildServiceContainer()

	container.WebhookDispatcher.Start()
	defer container.WebhookDispatcher.Close()

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}

	return http.ListenAndServe(listenAddr, container.Router)
}

func HandleExitError(errStream io.Writer, err error) int {
	if err != nil {
		_, _ = fmt.Fprintln(errStream, err)
	}

	if err != nil {
		return ExitCodeMainError
	}

	return 0
}
