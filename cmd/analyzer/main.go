package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"script-analyzer/internal/analysis"
	"script-analyzer/internal/app"
	"script-analyzer/internal/httputil"
	"script-analyzer/internal/ingest"
	"script-analyzer/internal/llm"
)

const downloadFilename = "script_comparative_analysis.txt"

//go:embed index.html
var indexHTML []byte

type analyzeForm struct {
	Provider     string `validate:"required"`
	Template     string `validate:"omitempty,max=64"`
	Instructions string `validate:"max=4000"`
}

type failureBody struct {
	Kind      llm.FailureKind `json:"kind"`
	Status    int             `json:"status,omitempty"`
	Retryable bool            `json:"retryable"`
}

type analyzeResponse struct {
	AnalysisID   string           `json:"analysis_id"`
	OK           bool             `json:"ok"`
	Result       string           `json:"result"`
	Failure      *failureBody     `json:"failure,omitempty"`
	Warnings     []ingest.Warning `json:"warnings"`
	Documents    int              `json:"documents"`
	Provider     string           `json:"provider"`
	Template     string           `json:"template"`
	PromptTokens int              `json:"prompt_tokens"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Log.Info("analyzer listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("analyzer stopped")
}

func newRouter(deps app.Deps) http.Handler {
	var timeout time.Duration
	if deps.Config.ProviderTimeout > 0 {
		timeout = deps.Config.ProviderTimeout + time.Minute
	}
	r := httputil.NewRouter(deps.Log, timeout)

	r.Get("/", indexHandler)
	r.Get("/api/templates", templatesHandler(deps))
	r.Get("/api/providers", providersHandler())
	r.Post("/api/analyze", analyzeHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

func indexHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func templatesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"default":   deps.Prompts.Default(),
			"templates": deps.Prompts.Templates(),
		})
	}
}

func providersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"providers": llm.Providers(),
		})
	}
}

func analyzeHandler(deps app.Deps) http.HandlerFunc {
	maxUpload := deps.Config.MaxUploadSize
	maxDocs := deps.Config.MaxDocuments

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxUpload {
			httputil.Fail(deps.Log, w, fmt.Sprintf("upload too large (max %d bytes)", maxUpload), nil, http.StatusBadRequest)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			httputil.Fail(deps.Log, w, "invalid multipart upload", err, http.StatusBadRequest)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		form := analyzeForm{
			Provider:     r.FormValue("provider"),
			Template:     r.FormValue("template"),
			Instructions: r.FormValue("instructions"),
		}
		if err := httputil.Validator.Struct(&form); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		files := r.MultipartForm.File["files"]
		if maxDocs > 0 && len(files) > maxDocs {
			httputil.Fail(deps.Log, w, fmt.Sprintf("too many files (max %d)", maxDocs), nil, http.StatusBadRequest)
			return
		}
		docs := make([]ingest.SourceDocument, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusBadRequest)
				return
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusBadRequest)
				return
			}
			docs = append(docs, ingest.SourceDocument{
				Name:    fh.Filename,
				Format:  ingest.DetectFormat(fh.Filename, content),
				Content: content,
			})
		}

		rep, err := deps.Analyzer.Run(r.Context(), analysis.Request{
			Documents:  docs,
			Template:   form.Template,
			Addendum:   form.Instructions,
			Provider:   form.Provider,
			Credential: r.FormValue("api_key"),
		})
		if err != nil {
			status := http.StatusInternalServerError
			if analysis.IsPrecondition(err) {
				status = http.StatusBadRequest
			}
			httputil.Fail(deps.Log, w, err.Error(), err, status)
			return
		}

		if wantsDownload(r) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, downloadFilename))
			w.Header().Set("X-Analysis-Id", rep.ID.String())
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, rep.Result.String())
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toResponse(rep))
	}
}

func wantsDownload(r *http.Request) bool {
	v, err := strconv.ParseBool(r.FormValue("download"))
	return err == nil && v
}

func toResponse(rep analysis.Report) analyzeResponse {
	resp := analyzeResponse{
		AnalysisID:   rep.ID.String(),
		OK:           rep.Result.OK(),
		Result:       rep.Result.String(),
		Warnings:     rep.Warnings,
		Documents:    rep.DocumentCount,
		Provider:     rep.Provider,
		Template:     rep.Template,
		PromptTokens: rep.PromptTokens,
	}
	if resp.Warnings == nil {
		resp.Warnings = []ingest.Warning{}
	}
	if f := rep.Result.Failure; f != nil {
		resp.Failure = &failureBody{Kind: f.Kind, Status: f.Status, Retryable: f.Retryable()}
	}
	return resp
}
