// Package audit is the append-only action trail. Records go through a
// buffered channel and a single writer goroutine; a full buffer drops the
// record with a log line rather than ever blocking the primary operation.
package audit

import (
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/scamlux/smm-league/config"
	"github.com/scamlux/smm-league/misc"
)

type Action struct {
	Id         string `json:"id"`
	ActorId    string `json:"actorId"`
	Action     string `json:"action"`
	TargetId   string `json:"targetId,omitempty"`
	TargetType string `json:"targetType,omitempty"`
	Details    string `json:"details,omitempty"`

	CreatedAt int64 `json:"createdAt"`
}

type Logger struct {
	db  *bolt.DB
	cfg *config.Config

	ch   chan *Action
	done chan struct{}
}

func New(db *bolt.DB, cfg *config.Config) *Logger {
	l := &Logger{
		db:   db,
		cfg:  cfg,
		ch:   make(chan *Action, 256),
		done: make(chan struct{}),
	}
	go l.loop()
	return l
}

// Record queues an audit entry; it never blocks and never fails the caller.
func (l *Logger) Record(actorId, action, targetId, targetType, details string) {
	a := &Action{
		ActorId:    actorId,
		Action:     action,
		TargetId:   targetId,
		TargetType: targetType,
		Details:    details,
		CreatedAt:  time.Now().Unix(),
	}
	select {
	case l.ch <- a:
	default:
		log.Println("audit: buffer full, dropping record", action)
	}
}

func (l *Logger) loop() {
	defer close(l.done)
	for a := range l.ch {
		if err := l.db.Update(func(tx *bolt.Tx) (err error) {
			if a.Id, err = misc.GetNextIndex(tx, l.cfg.Bucket.Audit); err != nil {
				return
			}
			return misc.PutTxJson(tx, l.cfg.Bucket.Audit, a.Id, a)
		}); err != nil {
			log.Println("audit: failed to persist record", a.Action, err)
		}
	}
}

// Close drains pending records and stops the writer.
func (l *Logger) Close() error {
	close(l.ch)
	<-l.done
	return nil
}

// ListTx returns the trail newest first, for the admin surface.
func (l *Logger) ListTx(tx *bolt.Tx) []*Action {
	out := make([]*Action, 0, 64)
	misc.GetBucket(tx, l.cfg.Bucket.Audit).ForEach(func(k, v []byte) error {
		a := &Action{}
		if json.Unmarshal(v, a) == nil {
			out = append(out, a)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return misc.IdAfter(out[i].Id, out[j].Id)
	})
	return out
}
