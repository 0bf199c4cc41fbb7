package app

import (
	"fmt"
	"io"
	"net"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
)

// LANAddress returns the IPv4 address the host would use to reach the
// internet. A UDP dial sends no packets; it only selects a route. Falls back
// to loopback when there is no route.
func LANAddress() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "127.0.0.1"
	}
	return addr.IP.String()
}

// printBanner writes the access URLs and the admin credentials. It goes to
// stdout rather than the logger so the password never lands in log storage.
func printBanner(w io.Writer, lanIP string, port int, adminPassword string) {
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w, "fileshare is running")
	fmt.Fprintf(w, "  LAN:       http://%s:%d\n", lanIP, port)
	fmt.Fprintf(w, "  Localhost: http://localhost:%d\n", port)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Admin username: %s\n", domain.AdminUsername)
	fmt.Fprintf(w, "  Admin password: %s\n", adminPassword)
	fmt.Fprintln(w, "  The password changes on every start.")
	fmt.Fprintln(w, "============================================================")
}
