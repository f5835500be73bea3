package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// TrayNotifier delivers reminders to a running medweek-tray helper. The tray
// advertises itself through a lockfile holding "port|pid|secret".
type TrayNotifier struct {
	DurationMs uint32
	client     *http.Client
}

type WebhookPayload struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func NewTrayNotifier(durationMs uint32) *TrayNotifier {
	if durationMs == 0 {
		durationMs = constants.NotificationDurationMs
	}
	return &TrayNotifier{
		DurationMs: durationMs,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *TrayNotifier) Deliver(ctx context.Context, r Reminder) error {
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}
	ep, err := locateTray(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload := WebhookPayload{Title: r.Title(), Text: r.Body(), DurationMs: n.DurationMs}
	var lastErr error
	for attempt := 0; attempt < constants.NotifyMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(constants.NotifyRetryDelay):
			}
		}
		if lastErr = n.send(ctx, ep, payload); lastErr == nil {
			return nil
		}
		logger.Debug("Tray delivery failed", "attempt", attempt+1, "schedule_id", r.ScheduleID, "error", lastErr)
	}
	return lastErr
}

// GetTrayAppConfigDir returns the configuration directory used by the tray
// application, honoring a custom lockfile_dir from its settings.json.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err == nil {
		var store struct {
			Settings struct {
				LockfileDir *string `json:"lockfile_dir"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(data, &store); err == nil {
			if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
				return *store.Settings.LockfileDir, nil
			}
		}
	}

	return trayConfigDir, nil
}

// TrayRunning returns nil when the tray helper advertised in
// trayAppConfigDir is alive.
func TrayRunning(trayAppConfigDir string) error {
	_, err := locateTray(filepath.Join(trayAppConfigDir, constants.NotifierLockfileName))
	return err
}

// trayEndpoint is the parsed "port|pid|secret" lockfile.
type trayEndpoint struct {
	Port   int
	PID    int
	Secret string
}

func (e trayEndpoint) url() string {
	return "http://127.0.0.1:" + strconv.Itoa(e.Port)
}

func parseLockfile(content string) (trayEndpoint, error) {
	fields := strings.Split(strings.TrimSpace(content), "|")
	if len(fields) != 3 {
		return trayEndpoint{}, errors.New("lockfile is malformed")
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var ep trayEndpoint
	var err error
	if fields[0] == "" {
		return trayEndpoint{}, errors.New("port in lockfile is empty")
	}
	if ep.Port, err = strconv.Atoi(fields[0]); err != nil {
		return trayEndpoint{}, errors.New("invalid port number in lockfile")
	}
	if ep.Port < 1 || ep.Port > 65535 {
		return trayEndpoint{}, fmt.Errorf("port number %d is outside valid range (1-65535)", ep.Port)
	}
	if ep.PID, err = strconv.Atoi(fields[1]); err != nil {
		return trayEndpoint{}, errors.New("invalid process ID in lockfile")
	}
	if ep.Secret = fields[2]; ep.Secret == "" {
		return trayEndpoint{}, errors.New("secret in lockfile is empty")
	}
	return ep, nil
}

// locateTray reads the lockfile and checks that its pid is still the tray
// executable.
func locateTray(lockfilePath string) (trayEndpoint, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return trayEndpoint{}, errors.New("medweek-tray is not running")
	}
	ep, err := parseLockfile(string(content))
	if err != nil {
		return trayEndpoint{}, err
	}

	proc, err := findProcessFunc(ep.PID)
	if err != nil || proc == nil {
		return trayEndpoint{}, errors.New("medweek-tray process not running")
	}
	if exe := proc.Executable(); !strings.HasPrefix(exe, constants.TrayExecutablePrefix) {
		return trayEndpoint{}, fmt.Errorf("process with PID %d is not medweek-tray (is %s)", ep.PID, exe)
	}
	return ep, nil
}

func (n *TrayNotifier) send(ctx context.Context, ep trayEndpoint, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.url(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Medweek-Secret", ep.Secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
