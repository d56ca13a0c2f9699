/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package server exposes one served model over HTTP: health, metadata and
// infer endpoints in the v2 style, plus a static status page.
package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"github.com/hep-ml/deeptau-serve/internal/backend"
	"github.com/hep-ml/deeptau-serve/internal/modelconfig"
	"github.com/hep-ml/deeptau-serve/internal/tensor"
)

// Server routes inference traffic for one model to its backend.
type Server struct {
	cfg     *modelconfig.Config
	backend backend.Backend
	engine  *gin.Engine
}

// New builds the router. staticDir may be empty to disable the status page.
func New(cfg *modelconfig.Config, b backend.Backend, staticDir string) *Server {
	s := &Server{cfg: cfg, backend: b, engine: gin.Default()}

	if staticDir != "" {
		s.engine.Use(static.Serve("/", static.LocalFile(staticDir, false)))
	}

	s.engine.GET("/v2/health/live", s.handleLive)
	s.engine.GET("/v2/health/ready", s.handleReady)
	s.engine.GET("/v2/models/:model", s.handleMetadata)
	s.engine.GET("/v2/models/:model/ready", s.handleModelReady)
	s.engine.POST("/v2/models/:model/infer", s.handleInfer)
	return s
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("serving model %q on %s", s.cfg.Name, addr)
	return s.engine.Run(addr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleLive(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Server) handleReady(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Server) handleModelReady(c *gin.Context) {
	if c.Param("model") != s.cfg.Name {
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown model " + c.Param("model")})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleMetadata(c *gin.Context) {
	if c.Param("model") != s.cfg.Name {
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown model " + c.Param("model")})
		return
	}
	c.JSON(http.StatusOK, metadataResponse{
		Name:    s.cfg.Name,
		Backend: s.cfg.Backend,
		Inputs:  metadataTensors(s.cfg.Inputs),
		Outputs: metadataTensors(s.cfg.Outputs),
	})
}

func metadataTensors(tcs []modelconfig.TensorConfig) []metadataTensor {
	out := make([]metadataTensor, len(tcs))
	for i, tc := range tcs {
		out[i] = metadataTensor{
			Name:     tc.Name,
			Datatype: strings.TrimPrefix(tc.DataType, "TYPE_"),
			Shape:    tc.Dims,
		}
	}
	return out
}

func (s *Server) handleInfer(c *gin.Context) {
	if c.Param("model") != s.cfg.Name {
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown model " + c.Param("model")})
		return
	}

	var wire inferRequest
	if err := c.ShouldBindJSON(&wire); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	inputs := make([]tensor.Tensor, len(wire.Inputs))
	for i, in := range wire.Inputs {
		dt, err := tensor.ParseDataType(in.Datatype)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "input " + in.Name + ": " + err.Error()})
			return
		}
		t, err := tensor.New(in.Name, dt, in.Shape, in.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		inputs[i] = t
	}

	responses := s.backend.Execute([]*backend.Request{backend.NewRequest(wire.ID, inputs)})
	resp := responses[0]
	if resp.Err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: resp.Err.Error()})
		return
	}

	out := inferResponse{ModelName: s.cfg.Name, ID: wire.ID, Outputs: make([]inferTensor, len(resp.Outputs))}
	for i, t := range resp.Outputs {
		out.Outputs[i] = inferTensor{
			Name:     t.Name,
			Shape:    t.Shape,
			Datatype: t.DataType.String(),
			Data:     t.Data,
		}
	}
	c.JSON(http.StatusOK, out)
}
