package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const ExitCodeMainError = 1

func RunApp(listenAddr string, defaultRows, defaultCols int) error {
	gin.SetMode(gin.ReleaseMode)

	container := BuildServiceContainer(defaultRows, defaultCols)

	container.ChangeDispatcher.Start()
	defer container.ChangeDispatcher.Close()

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
