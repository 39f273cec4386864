package main

import (
	"context"
	"errors"
	"net"
	"os"

	"memoreal/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	if apiErr, ok := api.AsAPIError(err); ok {
		switch {
		case apiErr.IsUnauthorized():
			lines = append(lines, "hint: verify MEMOREAL_API_TOKEN matches the server configuration.")
		case apiErr.IsLocked():
			lines = append(lines, "hint: the capsule is still time-locked; check it with: memoreal unlockable <id>")
		case apiErr.IsLocationMismatch():
			lines = append(lines, "hint: pass the location the capsule was sealed with: --location <passphrase>")
		case apiErr.IsAuthorityMismatch():
			lines = append(lines, "hint: only the capsule author may mint; pass the author identity with --caller.")
		case apiErr.IsInvalidIdentity():
			lines = append(lines, "hint: identities are base58 32-byte keys; create one with: memoreal keygen")
		case apiErr.IsAlreadyMinted():
			lines = append(lines, "hint: the capsule token was already issued; see it with: memoreal status <id>")
		case apiErr.IsCapsuleExists():
			lines = append(lines, "hint: capsule ids are unique; omit --id to generate a fresh one.")
		case apiErr.IsNotFound():
			lines = append(lines, "hint: list known capsules with: memoreal list")
		case apiErr.IsLedgerUnavailable():
			lines = append(lines, "hint: the token ledger did not accept the mint; check ledger.url and ledger logs, then retry.")
		case apiErr.IsInternal():
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		if !apiErr.FromServer() {
			lines = append(lines, "hint: verify MEMOREAL_API_URL points to a memoreal server.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase MEMOREAL_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a memoreal server is running at MEMOREAL_API_URL.",
			"hint: start local server manually with: memoreal srv",
			"hint: you can increase MEMOREAL_HTTP_TIMEOUT for slower environments.",
		)
		if snapHint := snapStartHint(); snapHint != "" {
			lines = append(lines, snapHint)
		}
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func snapStartHint() string {
	if os.Getenv("SNAP") == "" && os.Getenv("SNAP_NAME") == "" {
		return ""
	}
	return "hint: in snap installs, start the daemon with: snap start memoreal.daemon"
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
