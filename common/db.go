package common

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// DBParams describes a MySQL endpoint.
type DBParams struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

func (p DBParams) address() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", p.User, p.Password, p.Host, p.Port, p.Name)
}

// DBConnect opens a pooled connection and waits for the server to answer a ping.
func DBConnect(ctx context.Context, p DBParams) (*sql.DB, error) {
	db, err := sql.Open("mysql", p.address())
	if err != nil {
		log.Errorf("Failed to connect to the database: %v", err)
		return nil, err
	}

	maxOpen := envInt([]string{"MANGROVE_DB_MAX_OPEN_CONNS", "DB_MAX_OPEN_CONNS"}, 5)
	maxIdle := envInt([]string{"MANGROVE_DB_MAX_IDLE_CONNS", "DB_MAX_IDLE_CONNS"}, 2)
	connMaxLifetimeMin := envInt([]string{"MANGROVE_DB_CONN_MAX_LIFETIME_MIN", "DB_CONN_MAX_LIFETIME_MIN"}, 5)
	pingMaxWaitSec := envInt([]string{"MANGROVE_DB_PING_MAX_WAIT_SEC", "DB_PING_MAX_WAIT_SEC"}, 30)

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Duration(connMaxLifetimeMin) * time.Minute)

	deadline := time.Now().Add(time.Duration(pingMaxWaitSec) * time.Second)
	waitInterval := time.Second
	for {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		pingErr := db.PingContext(pctx)
		cancel()
		if pingErr == nil {
			break
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			db.Close()
			return nil, fmt.Errorf("database ping timeout after %ds: %w", pingMaxWaitSec, pingErr)
		}
		log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, pingErr)
		select {
		case <-time.After(waitInterval):
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		}
		waitInterval *= 2
		if waitInterval > 10*time.Second {
			waitInterval = 10 * time.Second
		}
	}

	log.Infof("Established db connection pool: open=%d idle=%d max_lifetime_min=%d", maxOpen, maxIdle, connMaxLifetimeMin)
	return db, nil
}

func envInt(keys []string, defaultValue int) int {
	for _, key := range keys {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
