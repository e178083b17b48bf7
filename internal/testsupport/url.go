package testsupport

import (
	"net"
	"net/url"
	"strconv"
)

func splitURL(raw string) (scheme, host string, port int, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", 0, err
	}
	h, p, err := net.SplitHostPort(u.Host)
	if err != nil {
		return u.Scheme, u.Host, 0, nil
	}
	port, err = strconv.Atoi(p)
	if err != nil {
		return "", "", 0, err
	}
	return u.Scheme, h, port, nil
}
