package backup

import (
	"fmt"
	"log"
	"net"
	"path/filepath"
	"time"

	"github.com/2beens/liftlog/pkg"
)

// TrySendMetrics reports a finished backup to the running server over
// its unix socket. Best effort, an unreachable socket only logs, the
// backup itself already succeeded.
func TrySendMetrics(beginTimestamp time.Time, workoutsCount int, socketAddrDir, socketFileName string) {
	socket := filepath.Join(socketAddrDir, socketFileName)
	conn, err := net.DialTimeout("unix", socket, 10*time.Second)
	if err != nil {
		log.Printf("dial unix socket %s: %s, metrics not sent", socket, err)
		return
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		log.Printf("set conn deadline: %s, metrics not sent", err)
		return
	}

	duration := time.Since(beginTimestamp).Seconds()
	message := fmt.Sprintf("workouts-count::%d||duration::%f", workoutsCount, duration)
	if _, err := conn.Write([]byte(message)); err != nil {
		log.Printf("write to unix socket: %s, metrics not sent", err)
		return
	}

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		log.Printf("read unix socket response: %s", err)
		return
	}

	log.Printf("metrics sent, server says: %s", pkg.BytesToString(buf[:n]))
}
