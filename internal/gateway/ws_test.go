// ABOUTME: Tests for the relay WebSocket endpoint
// ABOUTME: Covers translated delivery, offline persistence, supersede, and close codes

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/babel-gateway/internal/router"
	"github.com/2389/babel-gateway/internal/translate"
)

// mapTranslator translates by lookup table, passing unknown text through.
type mapTranslator struct {
	byTarget map[string]map[string]string
}

func (m *mapTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if phrases, ok := m.byTarget[targetLanguage]; ok {
		if translated, ok := phrases[text]; ok {
			return translated, nil
		}
	}
	return text, nil
}

// dialWS opens a relay WebSocket connection for the given token.
func (tg *testGateway) dialWS(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(tg.server.URL, "http") + "/ws/" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForSessions blocks until the registry holds exactly n live sessions.
func (tg *testGateway) waitForSessions(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return tg.registry.Len() == n
	}, 2*time.Second, 10*time.Millisecond)
}

func readDelivery(t *testing.T, conn *websocket.Conn) router.DeliveryFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame router.DeliveryFrame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func sendInbound(t *testing.T, conn *websocket.Conn, receiverID int64, message string) {
	t.Helper()
	frame := fmt.Sprintf(`{"receiver_id":%d,"message":%q}`, receiverID, message)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func TestWS_TranslatedDelivery(t *testing.T) {
	tr := &mapTranslator{byTarget: map[string]map[string]string{
		"es": {"hello": "hola"},
		"en": {"gracias": "thank you"},
	}}
	tg := newTestGateway(t, tr)

	alice, aliceToken := tg.registerAndLogin(t, "alice", "en")
	bob, bobToken := tg.registerAndLogin(t, "bob", "es")

	aliceConn := tg.dialWS(t, aliceToken)
	bobConn := tg.dialWS(t, bobToken)
	tg.waitForSessions(t, 2)

	sendInbound(t, aliceConn, bob.ID, "hello")

	frame := readDelivery(t, bobConn)
	assert.Equal(t, alice.ID, frame.SenderID)
	assert.Equal(t, bob.ID, frame.ReceiverID)
	assert.Equal(t, "hello", frame.OriginalMessage)
	assert.Equal(t, "hola", frame.TranslatedMessage)
	assert.NotZero(t, frame.ID)
	assert.NotEmpty(t, frame.Timestamp)

	// Reply goes the other way, translated into alice's language.
	sendInbound(t, bobConn, alice.ID, "gracias")

	frame = readDelivery(t, aliceConn)
	assert.Equal(t, bob.ID, frame.SenderID)
	assert.Equal(t, "thank you", frame.TranslatedMessage)
}

func TestWS_OfflineReceiverStillPersists(t *testing.T) {
	tg := newTestGateway(t, translate.Noop{})

	_, aliceToken := tg.registerAndLogin(t, "alice", "en")
	bob, _ := tg.registerAndLogin(t, "bob", "es")

	aliceConn := tg.dialWS(t, aliceToken)
	tg.waitForSessions(t, 1)

	sendInbound(t, aliceConn, bob.ID, "are you there")

	// The message lands in history even though bob has no live connection.
	var messages []MessageResponse
	require.Eventually(t, func() bool {
		messages = nil
		resp := tg.getAuthed(t, fmt.Sprintf("/messages/%d", bob.ID), aliceToken, &messages)
		return resp.StatusCode == 200 && len(messages) == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "are you there", messages[0].OriginalMessage)
}

func TestWS_UnknownReceiverDropped(t *testing.T) {
	tg := newTestGateway(t, translate.Noop{})

	_, aliceToken := tg.registerAndLogin(t, "alice", "en")
	bob, _ := tg.registerAndLogin(t, "bob", "es")

	aliceConn := tg.dialWS(t, aliceToken)
	tg.waitForSessions(t, 1)

	sendInbound(t, aliceConn, 9999, "into the void")

	// The connection stays open: a later frame to a real user still works.
	sendInbound(t, aliceConn, bob.ID, "still here")

	var messages []MessageResponse
	require.Eventually(t, func() bool {
		messages = nil
		resp := tg.getAuthed(t, fmt.Sprintf("/messages/%d", bob.ID), aliceToken, &messages)
		return resp.StatusCode == 200 && len(messages) == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "still here", messages[0].OriginalMessage)
}

func TestWS_BadTokenClosed(t *testing.T) {
	tg := newTestGateway(t, translate.Noop{})

	wsURL := "ws" + strings.TrimPrefix(tg.server.URL, "http") + "/ws/not-a-token"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation),
		"expected close 1008, got %v", err)
}

func TestWS_MalformedFrameClosed(t *testing.T) {
	tg := newTestGateway(t, translate.Noop{})

	_, aliceToken := tg.registerAndLogin(t, "alice", "en")
	aliceConn := tg.dialWS(t, aliceToken)
	tg.waitForSessions(t, 1)

	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte("not json")))

	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := aliceConn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData),
		"expected close 1007, got %v", err)
}

func TestWS_MissingFieldsClosed(t *testing.T) {
	tg := newTestGateway(t, translate.Noop{})

	_, aliceToken := tg.registerAndLogin(t, "alice", "en")
	aliceConn := tg.dialWS(t, aliceToken)
	tg.waitForSessions(t, 1)

	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(`{"message":"no receiver"}`)))

	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := aliceConn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData),
		"expected close 1007, got %v", err)
}

func TestWS_PersistFailureClosed(t *testing.T) {
	tg := newTestGateway(t, translate.Noop{})

	_, aliceToken := tg.registerAndLogin(t, "alice", "en")
	bob, _ := tg.registerAndLogin(t, "bob", "es")

	aliceConn := tg.dialWS(t, aliceToken)
	tg.waitForSessions(t, 1)

	// Kill the database under the live connection; the next frame cannot be
	// persisted and the server must tear the connection down.
	require.NoError(t, tg.store.Close())

	sendInbound(t, aliceConn, bob.ID, "lost to the void")

	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := aliceConn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr),
		"expected close 1011, got %v", err)

	tg.waitForSessions(t, 0)
}

func TestWS_SupersededConnection(t *testing.T) {
	tg := newTestGateway(t, translate.Noop{})

	alice, aliceToken := tg.registerAndLogin(t, "alice", "en")
	bob, bobToken := tg.registerAndLogin(t, "bob", "es")

	bobFirst := tg.dialWS(t, bobToken)
	tg.waitForSessions(t, 1)

	bobSecond := tg.dialWS(t, bobToken)

	// The first connection is closed when the second registers.
	require.NoError(t, bobFirst.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := bobFirst.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure),
		"expected close 1000, got %v", err)

	// Only one live session remains and it receives deliveries.
	tg.waitForSessions(t, 1)

	aliceConn := tg.dialWS(t, aliceToken)
	tg.waitForSessions(t, 2)

	sendInbound(t, aliceConn, bob.ID, "are you the new one")

	frame := readDelivery(t, bobSecond)
	assert.Equal(t, alice.ID, frame.SenderID)
	assert.Equal(t, "are you the new one", frame.OriginalMessage)
}

func TestWS_DisconnectUnregisters(t *testing.T) {
	tg := newTestGateway(t, translate.Noop{})

	_, aliceToken := tg.registerAndLogin(t, "alice", "en")
	aliceConn := tg.dialWS(t, aliceToken)
	tg.waitForSessions(t, 1)

	require.NoError(t, aliceConn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second)))
	aliceConn.Close()

	tg.waitForSessions(t, 0)
}
