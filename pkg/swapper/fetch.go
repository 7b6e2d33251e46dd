package swapper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/garment-swap-kit/pkg/domain"
)

// Loader はローカルパス・http(s) URL・gs:// URI の三種類の参照を読み込みます。
type Loader struct {
	reader     remoteio.InputReader
	httpClient httpkit.ClientInterface
}

// NewLoader は依存関係を注入して Loader を初期化します。
func NewLoader(reader remoteio.InputReader, httpClient httpkit.ClientInterface) (*Loader, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &Loader{reader: reader, httpClient: httpClient}, nil
}

// Load は参照先の画像データを読み込みます。入力バイト列は保持しません。
func (l *Loader) Load(ctx context.Context, ref domain.ImageRef) ([]byte, error) {
	uri := string(ref)
	switch {
	case strings.HasPrefix(uri, "gs://"):
		rc, err := l.reader.Open(ctx, uri)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)

	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		if safe, err := isSafeURL(uri); err != nil || !safe {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
		}
		return l.httpClient.FetchBytes(ctx, uri)

	default:
		return os.ReadFile(uri)
	}
}

// isSafeURL は、SSRF (Server-Side Request Forgery) 対策として URL を検証します。
// 許可されたスキーム (http, https) かつ、プライベートIPやループバックアドレスを
// ターゲットにしていないことを確認します。
func isSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("ホスト '%s' の名前解決に失敗しました: %w", host, err)
		}
		ips = resolvedIPs
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
