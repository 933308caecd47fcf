package pushclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"looknest/internal/event"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func waitForState(t *testing.T, agent *Agent, want State) {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if agent.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("agent never reached state %v, now %v", want, agent.State())
}

func TestAgent_GivesUpAfterMaxAttempts(t *testing.T) {
	var dials atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		// 拒绝升级 模拟无法建立的传输
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	agent := NewAgent(wsURL(server), Options{
		MaxAttempts: 5,
		RetryDelay:  20 * time.Millisecond,
	})
	agent.Start()
	defer agent.Stop()

	waitForState(t, agent, StateGivenUp)
	assert.Equal(t, int32(5), dials.Load())

	// GivenUp是终态 不再调度新的尝试
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(5), dials.Load())
	assert.Equal(t, StateGivenUp, agent.State())

	// 终态下发送应报错而不是静默丢弃
	assert.ErrorIs(t, agent.Send(map[string]string{"type": "noop"}), ErrNotConnected)
}

func TestAgent_ReconnectsAndResendsAuth(t *testing.T) {
	var dials atomic.Int32
	authFrames := make(chan map[string]string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := dials.Add(1)
		if n <= 2 {
			// 前两次连接失败
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// 读取重连后客户端立即补发的auth帧
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame map[string]string
		if json.Unmarshal(data, &frame) == nil {
			authFrames <- frame
		}
		// 保持连接直到测试结束
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	agent := NewAgent(wsURL(server), Options{
		Token:       "stored-credential",
		MaxAttempts: 5,
		RetryDelay:  20 * time.Millisecond,
	})
	agent.Start()
	defer agent.Stop()

	waitForState(t, agent, StateOpen)

	// 连接成功后失败计数归零
	assert.Equal(t, 0, agent.Attempts())
	assert.Equal(t, int32(3), dials.Load())

	// 存储的凭证被立即作为auth帧重发
	select {
	case frame := <-authFrames:
		assert.Equal(t, "auth", frame["type"])
		assert.Equal(t, "stored-credential", frame["token"])
	case <-time.After(2 * time.Second):
		t.Fatal("server never received an auth frame")
	}
}

func TestAgent_FanoutSurvivesPanickingSubscriber(t *testing.T) {
	frames := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		frames <- conn
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	agent := NewAgent(wsURL(server), Options{
		MaxAttempts: 3,
		RetryDelay:  20 * time.Millisecond,
	})

	var mu sync.Mutex
	var got []event.Type

	// 第一个订阅者panic 不能影响后面的订阅者
	agent.Subscribe(func(ev event.Event) {
		panic("subscriber bug")
	})
	agent.Subscribe(func(ev event.Event) {
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
	})

	agent.Start()
	defer agent.Stop()
	waitForState(t, agent, StateOpen)

	serverConn := <-frames
	require.NoError(t, serverConn.WriteJSON(event.New(event.TypeNotification)))
	require.NoError(t, serverConn.WriteJSON(event.New(event.TypeProfileUpdated)))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	// 到达顺序分发
	require.Len(t, got, 2)
	assert.Equal(t, event.TypeNotification, got[0])
	assert.Equal(t, event.TypeProfileUpdated, got[1])
}

func TestAgent_SendWhileNotOpen(t *testing.T) {
	agent := NewAgent("ws://127.0.0.1:1/ws", Options{
		MaxAttempts: 1,
		RetryDelay:  10 * time.Millisecond,
	})

	// 未启动时不在Open状态
	assert.ErrorIs(t, agent.Send(map[string]string{"type": "noop"}), ErrNotConnected)
}

func TestAgent_StateTransitionsObservable(t *testing.T) {
	var mu sync.Mutex
	var states []State

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	agent := NewAgent(wsURL(server), Options{
		MaxAttempts: 2,
		RetryDelay:  10 * time.Millisecond,
		OnStateChange: func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		},
	})
	agent.Start()
	defer agent.Stop()

	waitForState(t, agent, StateGivenUp)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, states)
	assert.Equal(t, StateConnecting, states[0])
	assert.Equal(t, StateGivenUp, states[len(states)-1])
}
