package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

const healthTimeout = 120 * time.Second

// Llama runs a llama-server subprocess and implements Engine against its
// OpenAI-compatible HTTP API. It handles binary resolution, port allocation,
// health polling, and graceful shutdown.
type Llama struct {
	opts Options

	mu        sync.Mutex
	cmd       *exec.Cmd
	client    *Client
	modelName string
	port      int
	baseURL   string
	stopped   bool          // true after explicit Close()
	doneCh    chan struct{} // closed when the process exits
}

// NewLlama creates a Llama engine. Call Load to start the subprocess.
func NewLlama(opts Options) *Llama {
	return &Llama{opts: opts}
}

// allocatePort finds a free TCP port by binding to :0 and releasing it.
func allocatePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("allocate port: %w", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port, nil
}

// resolveBinary returns the full path to llama-server in binDir.
func resolveBinary(binDir string) (string, error) {
	binName := "llama-server"
	if runtime.GOOS == "windows" {
		binName = "llama-server.exe"
	}
	binPath := filepath.Join(binDir, binName)
	if _, err := os.Stat(binPath); os.IsNotExist(err) {
		return "", fmt.Errorf("llama-server not found at %s, run 'steadysocial setup' to download it", binPath)
	}
	return binPath, nil
}

func (l *Llama) Load(ctx context.Context, model string, progress func(string)) error {
	binPath, err := resolveBinary(l.opts.BinDir)
	if err != nil {
		return err
	}

	port := l.opts.Port
	if port == 0 {
		port, err = allocatePort()
		if err != nil {
			return err
		}
	}

	args := []string{
		"--model", model,
		"--port", strconv.Itoa(port),
		"--host", "127.0.0.1",
		"--ctx-size", strconv.Itoa(l.opts.CtxSize),
		"--embeddings",
		"--jinja",
	}
	if l.opts.GPULayers >= 0 {
		args = append(args, "--n-gpu-layers", strconv.Itoa(l.opts.GPULayers))
	} else {
		args = append(args, "--n-gpu-layers", "999")
	}
	if l.opts.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(l.opts.Threads))
	}
	if l.opts.FlashAttention {
		args = append(args, "--flash-attn", "on")
	}

	// The subprocess must outlive the call that triggered the load; the
	// caller's ctx only bounds the health-check wait below.
	cmd := exec.Command(binPath, args...)
	cmd.Env = append(os.Environ(), "LD_LIBRARY_PATH="+l.opts.BinDir)
	pipeOutput(cmd)

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	log.Info().Str("bin", binPath).Int("port", port).Str("model", model).Msg("starting llama-server")
	if progress != nil {
		progress("starting llama-server")
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start llama-server: %w", err)
	}

	doneCh := make(chan struct{})
	go func() {
		cmd.Wait()
		close(doneCh)
	}()

	l.mu.Lock()
	l.cmd = cmd
	l.port = port
	l.baseURL = baseURL
	l.client = NewClient(baseURL)
	l.modelName = filepath.Base(model)
	l.stopped = false
	l.doneCh = doneCh
	l.mu.Unlock()

	if err := l.waitForHealth(ctx, progress); err != nil {
		l.Close()
		return fmt.Errorf("llama-server failed to become ready: %w", err)
	}

	log.Info().Int("port", port).Str("model", l.modelName).Msg("llama-server ready")
	return nil
}

// waitForHealth polls /health until it returns 200, reporting progress
// every few seconds while the model loads.
func (l *Llama) waitForHealth(ctx context.Context, progress func(string)) error {
	deadline := time.Now().Add(healthTimeout)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	progressTicker := time.NewTicker(5 * time.Second)
	defer progressTicker.Stop()

	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.Exited():
			return fmt.Errorf("process exited during startup (exit code %d)", l.exitCode())
		case <-progressTicker.C:
			msg := fmt.Sprintf("loading model... (%.0fs elapsed)", time.Since(start).Seconds())
			log.Debug().Msg(msg)
			if progress != nil {
				progress(msg)
			}
		case <-ticker.C:
			if time.Now().After(deadline) {
				return fmt.Errorf("timeout waiting for llama-server after %s", healthTimeout)
			}
			if l.healthCheck(ctx) == nil {
				return nil
			}
		}
	}
}

func (l *Llama) healthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (l *Llama) Complete(ctx context.Context, messages []api.Message) (string, error) {
	client := l.httpClient()
	if client == nil {
		return "", fmt.Errorf("engine not loaded")
	}
	resp, err := client.ChatCompletion(ctx, &api.ChatCompletionRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Message.Content, nil
}

func (l *Llama) Stream(ctx context.Context, messages []api.Message) (<-chan StreamEvent, error) {
	client := l.httpClient()
	if client == nil {
		return nil, fmt.Errorf("engine not loaded")
	}
	return client.ChatCompletionStream(ctx, &api.ChatCompletionRequest{Messages: messages, Stream: true})
}

func (l *Llama) Embed(ctx context.Context, text string) ([]float32, error) {
	client := l.httpClient()
	if client == nil {
		return nil, fmt.Errorf("engine not loaded")
	}
	return client.Embed(ctx, text)
}

func (l *Llama) ModelName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.modelName
}

// Exited returns a channel closed when the subprocess exits.
func (l *Llama) Exited() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doneCh
}

func (l *Llama) httpClient() *Client {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.client
}

func (l *Llama) exitCode() int {
	l.mu.Lock()
	cmd := l.cmd
	l.mu.Unlock()
	if cmd == nil || cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

// Close sends SIGTERM, waits up to 5 seconds, then SIGKILL.
func (l *Llama) Close() error {
	l.mu.Lock()
	l.stopped = true
	cmd := l.cmd
	doneCh := l.doneCh
	l.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}

	pid := cmd.Process.Pid
	log.Info().Int("pid", pid).Msg("stopping llama-server")

	var sigErr error
	if runtime.GOOS == "windows" {
		sigErr = cmd.Process.Signal(os.Interrupt)
	} else {
		sigErr = cmd.Process.Signal(syscall.SIGTERM)
	}
	if sigErr != nil {
		// Process may already be dead.
		return nil
	}

	select {
	case <-doneCh:
		return nil
	case <-time.After(5 * time.Second):
		log.Warn().Int("pid", pid).Msg("llama-server did not exit after SIGTERM, killing")
		if err := cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill llama-server: %w", err)
		}
		<-doneCh
		return nil
	}
}

// WasStopped reports whether Close was called, i.e. an exit was intentional.
func (l *Llama) WasStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// pipeOutput connects subprocess stdout+stderr to the logger.
func pipeOutput(cmd *exec.Cmd) {
	if stdout, err := cmd.StdoutPipe(); err == nil {
		go scanLines(stdout)
	}
	if stderr, err := cmd.StderrPipe(); err == nil {
		go scanLines(stderr)
	}
}

func scanLines(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		log.Debug().Str("proc", "llama-server").Msg(scanner.Text())
	}
}
