package backup

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

// WorkoutsBackupUnixSocketListenerSetup starts the unix socket listener
// the backup cmd reports its numbers to. The backup runs as a separate
// process, this socket carries its metrics into the server's Prometheus
// registry without a push gateway in between.
func WorkoutsBackupUnixSocketListenerSetup(
	ctx context.Context,
	socketAddrDir, socketFileName string,
	instr *metrics.Manager,
) (net.Addr, error) {
	socket := filepath.Join(socketAddrDir, socketFileName)
	listener, err := net.Listen("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("binding to unix socket %s: %w", socket, err)
	}

	if err := os.Chmod(socket, os.ModeSocket|0666); err != nil {
		return nil, err
	}

	go func() {
		go func() {
			<-ctx.Done()
			log.Debugln("workouts backup unix socket listener context done, closing listener")
			_ = listener.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			default:
				// Otherwise, continue accepting new connections.
			}

			conn, err := listener.Accept()
			if err != nil {
				log.Errorf("workouts backup unix socket listener conn accept: %s", err)
				return
			}
			log.Debugf("workouts backup unix socket got new conn: %s", conn.RemoteAddr().String())

			// if it takes over 5 minutes to transfer all backup data, then something is probably not right
			if err := conn.SetDeadline(time.Now().Add(5 * time.Minute)); err != nil {
				log.Errorf("failed to set conn timeout: %s", err)
				return
			}

			go func() {
				defer func() { _ = conn.Close() }()

				buf := make([]byte, 1024)
				n, err := conn.Read(buf)
				if err != nil {
					return
				}

				messageReceived := pkg.BytesToString(buf[:n])
				log.Infof("workouts backup unix socket received: %s", messageReceived)

				msgParts := strings.Split(messageReceived, "||")
				if len(msgParts) != 2 {
					log.Errorf("workouts backup conn, invalid message received: %s", messageReceived)
					return
				}

				durationInfo := msgParts[1]
				sendWorkoutsBackupDurationInfo(durationInfo, instr)

				workoutsCountInfo := msgParts[0]
				sendWorkoutsBackupCount(workoutsCountInfo, instr)

				_, err = conn.Write([]byte("ok"))
				if err != nil {
					log.Errorf("workouts backup conn, send response: %s", err)
				}
			}()
		}
	}()

	return listener.Addr(), nil
}

func sendWorkoutsBackupDurationInfo(durationInfoMsg string, metrics *metrics.Manager) {
	durationInfoParts := strings.Split(durationInfoMsg, "::")
	if len(durationInfoParts) != 2 {
		log.Errorf("workouts backup conn, invalid duration info received: %s", durationInfoMsg)
		return
	}

	durationInSec, err := strconv.ParseFloat(durationInfoParts[1], 64)
	if err != nil {
		log.Errorf("workouts backup conn, invalid duration info received: %s", err)
		return
	}

	metrics.HistWorkoutsBackupDuration.Observe(durationInSec)
}

func sendWorkoutsBackupCount(workoutsCountInfoMsg string, metrics *metrics.Manager) {
	workoutsCountInfoParts := strings.Split(workoutsCountInfoMsg, "::")
	if len(workoutsCountInfoParts) != 2 {
		log.Errorf("workouts backup conn, invalid workouts info received: %s", workoutsCountInfoMsg)
		return
	}

	workoutsCount, err := strconv.Atoi(workoutsCountInfoParts[1])
	if err != nil {
		log.Errorf("workouts backup conn, invalid workouts counter: %s", err)
		return
	}

	metrics.CounterWorkoutsBackups.Add(float64(workoutsCount))
}
