package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/INDUS0007/soul/app/core"
	"github.com/INDUS0007/soul/app/core/srv"
	v1 "github.com/INDUS0007/soul/app/logic/v1"
	"github.com/INDUS0007/soul/app/response"
	"github.com/INDUS0007/soul/pkg/types"
	"github.com/INDUS0007/soul/pkg/types/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatConnect upgrades the request and pumps chat frames until the peer
// goes away. Membership is checked before the upgrade so rejects stay
// plain HTTP.
func (s *HttpSrv) ChatConnect(c *gin.Context) {
	chatID := c.Param("chat")
	logic := v1.NewChatLogic(c, s.Core)

	chat, err := logic.CheckChatParty(chatID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", slog.String("chat_id", chatID), slog.String("error", err.Error()))
		return
	}

	userID, _ := logic.GetUserInfo()
	hub := s.Core.Srv().Hub()
	conn := hub.NewConn(userID, ws)

	hub.Join(chatID, conn)
	isCounsellor := logic.GetRole() == types.USER_ROLE_COUNSELLOR
	if isCounsellor {
		hub.JoinRoster(conn)
	}
	s.Core.Metrics().WSConnInc()

	defer func() {
		hub.Leave(chatID, conn)
		if isCounsellor {
			hub.LeaveRoster(conn)
		}
		conn.Close()
		s.Core.Metrics().WSConnDec()
	}()

	slog.Info("chat connection established",
		slog.String("chat_id", chatID), slog.String("user_id", userID), slog.String("conn_id", conn.ID()))

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var frame protocol.ClientFrame
		if err = json.Unmarshal(raw, &frame); err != nil {
			writeFrame(conn, protocol.NewErrorFrame("invalid frame"))
			continue
		}
		// 空文本静默忽略，不算错误
		if strings.TrimSpace(frame.Message) == "" {
			continue
		}

		res, err := logic.SubmitMessage(chat.ID, frame.Message, frame.ClientMessageID)
		if err != nil {
			writeFrame(conn, protocol.NewErrorFrame(resolveErrorMessage(s.Core, c, err)))
			continue
		}

		if res.Duplicate {
			writeFrame(conn, protocol.NewAckFrame(protocol.ACK_STATUS_DUPLICATE, frame.ClientMessageID, nil))
			continue
		}

		msgID := res.Message.ID
		writeFrame(conn, protocol.NewAckFrame(protocol.ACK_STATUS_SENT, frame.ClientMessageID, &msgID))

		publishSubmitResult(s.Core, logic, res)
	}
}

// writeFrame 统一走连接的发送队列，底层 websocket 只有 writeLoop 一个写者。
func writeFrame(conn *srv.Conn, frame any) {
	if err := conn.Send(frame); err != nil {
		slog.Debug("failed to queue frame", slog.String("error", err.Error()))
	}
}

// publishSubmitResult fans a freshly stored message out to the chat topic,
// plus a roster notice when the message pulled the chat out of the queue.
func publishSubmitResult(appCore *core.Core, logic *v1.ChatLogic, res *v1.SubmitMessageResult) {
	senderID, senderName := logic.GetUserInfo()
	isRequester := senderID == res.Chat.UserID
	appCore.Metrics().ChatMessageInc(lo.Ternary(isRequester, types.USER_ROLE_MEMBER, types.USER_ROLE_COUNSELLOR))

	event := protocol.MessageEvent{
		Type:            protocol.EVENT_MESSAGE,
		Message:         res.Message.Message,
		SenderID:        senderID,
		SenderUsername:  senderName,
		IsRequester:     isRequester,
		Timestamp:       res.Message.CreatedAt,
		MessageID:       res.Message.ID,
		ClientMessageID: res.Message.ClientMessageID,
	}
	if err := appCore.Srv().Hub().Broadcast(res.Chat.ID, event); err != nil {
		slog.Error("failed to broadcast chat message", slog.String("chat_id", res.Chat.ID), slog.String("error", err.Error()))
	}

	if res.Activated || res.AutoClosed {
		statusEvent := protocol.StatusEvent{
			Type:        protocol.EVENT_STATUS_UPDATE,
			SessionID:   res.Chat.ID,
			NewStatus:   string(res.Chat.Status),
			RequesterID: res.Chat.UserID,
			AssigneeID:  res.Chat.CounsellorID,
		}
		if err := appCore.Srv().Hub().Broadcast(res.Chat.ID, statusEvent); err != nil {
			slog.Error("failed to broadcast chat status", slog.String("chat_id", res.Chat.ID), slog.String("error", err.Error()))
		}
		// 大厅只关心排队会话被激活，其余状态变化不打扰
		if res.NotifyRoster() {
			if err := appCore.Srv().Hub().BroadcastRoster(statusEvent); err != nil {
				slog.Error("failed to broadcast roster status", slog.String("chat_id", res.Chat.ID), slog.String("error", err.Error()))
			}
		}
	}
}

func resolveErrorMessage(appCore *core.Core, c *gin.Context, err error) string {
	lang := v1.InjectLanguage(c)
	if lang == "" {
		lang = response.GetLangFromRequestOrDefault(c)
	}

	type messaged interface{ Message() string }
	if me, ok := err.(messaged); ok {
		return appCore.Localizer().Get(lang, me.Message())
	}
	return "internal error"
}
