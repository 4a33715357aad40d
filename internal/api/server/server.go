package server

import (
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"

	"github.com/avraam311/image-compressor/internal/api/handlers"
	"github.com/avraam311/image-compressor/internal/api/handlers/images"
	"github.com/avraam311/image-compressor/internal/middlewares"
)

const readHeaderTimeout = 10 * time.Second

func NewRouter(ginMode string, handlerIm *images.Handler) *ginext.Engine {
	e := ginext.New(ginMode)

	e.Use(middlewares.RequestID())
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(middlewares.Recovery())

	e.GET("/health", handlers.Health)
	e.POST("/compress", handlerIm.CompressImage)
	e.POST("/compress/", handlerIm.CompressImage)

	return e
}

func NewServer(addr string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
