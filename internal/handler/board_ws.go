package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"

	"collabboard-backend/internal/config"
	"collabboard-backend/internal/cursor"
	"collabboard-backend/internal/model"
	"collabboard-backend/internal/presence"
	"collabboard-backend/internal/store"
)

// BoardWSHandler 보드 실시간 WebSocket 핸들러
type BoardWSHandler struct {
	store     *store.Store
	cursors   *cursor.Manager
	presences *presence.Manager
	rdb       *redis.Client
	cfg       *config.Config
}

// NewBoardWSHandler BoardWSHandler 생성
func NewBoardWSHandler(s *store.Store, cursors *cursor.Manager, presences *presence.Manager, rdb *redis.Client, cfg *config.Config) *BoardWSHandler {
	return &BoardWSHandler{
		store:     s,
		cursors:   cursors,
		presences: presences,
		rdb:       rdb,
		cfg:       cfg,
	}
}

// clientMessage 클라이언트 → 서버 메시지
type clientMessage struct {
	Type string `json:"type"` // cursor, create, update, delete

	// cursor
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// create
	Object *model.BoardObject `json:"object,omitempty"`

	// update
	ID     string                 `json:"id,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`

	// delete
	IDs []string `json:"ids,omitempty"`
}

// wsEvent 커서/프레즌스 pub/sub 봉투. Sender로 자기 자신의 에코를 거른다.
type wsEvent struct {
	Type   string          `json:"type"` // cursor, presence
	Sender string          `json:"sender"`
	Data   json.RawMessage `json:"data"`
}

func boardChannel(boardID string) string {
	return fmt.Sprintf("board:%s:events", boardID)
}

// HandleWebSocket 보드 연결 처리: 스냅샷 전송 후 객체 diff, 커서,
// 프레즌스를 실시간으로 중계한다.
func (h *BoardWSHandler) HandleWebSocket(c *websocket.Conn) {
	boardID, ok1 := c.Locals("boardID").(string)
	userID, ok2 := c.Locals("userID").(int64)
	nickname, ok3 := c.Locals("nickname").(string)
	if !ok1 || !ok2 || !ok3 {
		c.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","message":"invalid session"}`))
		c.Close()
		return
	}

	uid := strconv.FormatInt(userID, 10)
	color := model.UserColor(uid)
	photoURL, _ := c.Locals("profileImg").(string)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		c.SetWriteDeadline(time.Now().Add(h.cfg.WebSocket.WriteTimeout))
		return c.WriteJSON(v)
	}

	// 객체 스냅샷 + 구독
	sub, snapshot, err := h.store.Subscribe(ctx, boardID)
	if err != nil {
		log.Printf("[Board %s] Subscribe failed for user %s: %v", boardID, uid, err)
		writeJSON(wsMap{"type": "error", "message": "failed to load board"})
		c.Close()
		return
	}
	defer sub.Close()

	if err := writeJSON(wsMap{"type": "snapshot", "objects": snapshot}); err != nil {
		c.Close()
		return
	}

	// 현재 커서/프레즌스 상태 전송 (실패해도 연결은 유지)
	if cursors, err := h.cursors.List(ctx, boardID, uid); err == nil {
		writeJSON(wsMap{"type": "cursors", "cursors": cursors})
	}
	if users, err := h.presences.List(ctx, boardID); err == nil {
		writeJSON(wsMap{"type": "presence", "users": users})
	}

	// 프레즌스 등록 및 브로드캐스트
	me := presence.BoardUser{
		UserID:      uid,
		DisplayName: nickname,
		PhotoURL:    photoURL,
		Color:       color,
	}
	if err := h.presences.Join(ctx, boardID, me); err != nil {
		log.Printf("[Board %s] Presence join failed for user %s: %v", boardID, uid, err)
	}
	me.IsOnline = true
	me.LastSeen = time.Now().UnixMilli()
	h.publish(ctx, boardID, "presence", uid, me)

	// 지오메트리 업데이트 병합 버퍼 (연결당 하나)
	coalescer := store.NewCoalescer(h.store, boardID, h.cfg.Board.GeometryQuiet)
	throttle := cursor.NewThrottle(h.cfg.Board.CursorThrottle)

	log.Printf("[Board %s] User %s connected", boardID, uid)

	defer func() {
		coalescer.Close()

		// 커서/프레즌스 정리 (best-effort)
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()
		if err := h.cursors.Remove(cleanupCtx, boardID, uid); err != nil {
			log.Printf("[Board %s] Cursor cleanup failed for user %s: %v", boardID, uid, err)
		}
		if err := h.presences.Leave(cleanupCtx, boardID, uid); err != nil {
			log.Printf("[Board %s] Presence cleanup failed for user %s: %v", boardID, uid, err)
		}
		me.IsOnline = false
		h.publish(cleanupCtx, boardID, "presence", uid, me)

		c.Close()
		log.Printf("[Board %s] User %s disconnected", boardID, uid)
	}()

	// 객체 diff 전달
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-sub.C:
				if !ok {
					return
				}
				if err := writeJSON(wsMap{
					"type":     "change",
					"added":    change.Added,
					"modified": change.Modified,
					"removed":  change.Removed,
				}); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// 커서/프레즌스 pub/sub 전달 (자기 자신 제외)
	pubsub := h.rdb.Subscribe(ctx, boardChannel(boardID))
	defer pubsub.Close()
	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event wsEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				if event.Sender == uid {
					continue
				}
				if err := writeJSON(wsMap{"type": event.Type, "data": event.Data}); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// 프레즌스 하트비트
	go func() {
		ticker := time.NewTicker(h.cfg.Board.PresenceHeartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := h.presences.Heartbeat(ctx, boardID, me); err != nil {
					log.Printf("[Board %s] Heartbeat failed for user %s: %v", boardID, uid, err)
				}
			}
		}
	}()

	// 메시지 수신 루프
	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "cursor":
			h.handleCursor(ctx, boardID, uid, nickname, photoURL, color, msg, throttle)
		case "create":
			if msg.Object == nil {
				continue
			}
			if _, err := h.store.Create(ctx, boardID, *msg.Object, userID); err != nil {
				log.Printf("[Board %s] Create failed for user %s: %v", boardID, uid, err)
				writeJSON(wsMap{"type": "error", "message": "create failed"})
			}
		case "update":
			if msg.ID == "" || len(msg.Fields) == 0 {
				continue
			}
			h.handleUpdate(ctx, boardID, uid, msg, coalescer, writeJSON)
		case "delete":
			if len(msg.IDs) == 0 {
				continue
			}
			if err := h.store.DeleteMany(ctx, boardID, msg.IDs); err != nil {
				log.Printf("[Board %s] Delete failed for user %s: %v", boardID, uid, err)
				writeJSON(wsMap{"type": "error", "message": "delete failed"})
			}
		}
	}
}

// handleCursor 커서 위치 업데이트: 리딩 엣지 스로틀로 윈도우 내 호출은 드롭
func (h *BoardWSHandler) handleCursor(ctx context.Context, boardID, uid, nickname, photoURL, color string, msg clientMessage, throttle *cursor.Throttle) {
	if !throttle.Allow() {
		return
	}

	pos := cursor.Position{
		UserID:      uid,
		DisplayName: nickname,
		PhotoURL:    photoURL,
		X:           msg.X,
		Y:           msg.Y,
		Color:       color,
	}
	if err := h.cursors.Set(ctx, boardID, pos); err != nil {
		log.Printf("[Board %s] Cursor write failed for user %s: %v", boardID, uid, err)
		return
	}
	pos.LastUpdated = time.Now().UnixMilli()
	h.publish(ctx, boardID, "cursor", uid, pos)
}

// handleUpdate 지오메트리 전용 업데이트는 버퍼로, 내용 변경은 즉시 기록
func (h *BoardWSHandler) handleUpdate(ctx context.Context, boardID, uid string, msg clientMessage, coalescer *store.Coalescer, writeJSON func(interface{}) error) {
	geometryOnly := true
	for field := range msg.Fields {
		if !store.IsGeometryField(field) {
			geometryOnly = false
			break
		}
	}

	if geometryOnly {
		coalescer.Buffer(msg.ID, msg.Fields)
		return
	}

	if err := h.store.Update(ctx, boardID, msg.ID, msg.Fields); err != nil {
		log.Printf("[Board %s] Update failed for user %s: %v", boardID, uid, err)
		writeJSON(wsMap{"type": "error", "message": "update failed"})
	}
}

// publish 커서/프레즌스 이벤트를 보드 채널로 발행
func (h *BoardWSHandler) publish(ctx context.Context, boardID, eventType, sender string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	event, err := json.Marshal(wsEvent{Type: eventType, Sender: sender, Data: data})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, boardChannel(boardID), event).Err(); err != nil {
		log.Printf("[Board %s] Publish failed: %v", boardID, err)
	}
}

// wsMap WS 응답용 축약 타입
type wsMap = map[string]interface{}
