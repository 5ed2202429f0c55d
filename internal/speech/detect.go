package speech

import (
	"fmt"
	"net/url"
	"os"

	"github.com/nguyentantai21042004/call-companion/internal/config"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
)

// Detect performs the capability query once. Callers branch on the returned variant.
func Detect(cfg config.SpeechConfig, log logger.Logger) Capability {
	switch cfg.Backend {
	case config.BackendDaemon:
		info, err := os.Stat(cfg.SocketPath)
		if err != nil {
			return Unsupported{Reason: fmt.Sprintf("no recognition daemon at %s", cfg.SocketPath)}
		}
		if info.Mode()&os.ModeSocket == 0 {
			return Unsupported{Reason: fmt.Sprintf("%s is not a socket", cfg.SocketPath)}
		}
		return Supported{Engine: NewDaemonEngine(cfg.SocketPath, cfg.Language, cfg.DialTimeout, log)}

	case config.BackendWebsocket:
		u, err := url.Parse(cfg.URL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return Unsupported{Reason: fmt.Sprintf("invalid recognition url %q", cfg.URL)}
		}
		return Supported{Engine: NewWebsocketEngine(cfg.URL, cfg.Language, cfg.DialTimeout, log)}

	default:
		return Unsupported{Reason: "speech recognition disabled"}
	}
}
