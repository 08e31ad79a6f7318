package notify

import (
	"fmt"
	"time"
)

// Message is the formatted title/body pair handed to the delivery client.
type Message struct {
	Title string
	Body  string
}

const (
	// Placeholder task title when the session has none or the lookup failed.
	defaultTaskTitle = "未命名任务"

	maxTitleRunes = 100
	maxErrorRunes = 500

	timeFormat = "2006/01/02 15:04:05"
)

func formatIdle(taskTitle, sessionID string, now time.Time) Message {
	body := fmt.Sprintf(`## ✅ 任务完成

**任务名称:** %s

**会话 ID:** `+"`%s`"+`

**状态:** 任务执行完成，等待您审查结果

**时间:** %s
`, taskTitle, sessionID, now.Format(timeFormat))

	return Message{Title: "✅ Agent 任务完成", Body: body}
}

func formatError(taskTitle, sessionID, errText string, now time.Time) Message {
	if errText == "" {
		errText = "未知错误"
	}
	errText = truncateRunes(errText, maxErrorRunes)

	body := fmt.Sprintf(`## ❌ 任务执行出错

**任务名称:** %s

**会话 ID:** `+"`%s`"+`

**错误信息:**
`+"```\n%s\n```"+`

**时间:** %s

---
⚠️ 需要人工介入处理`, taskTitle, sessionID, errText, now.Format(timeFormat))

	return Message{Title: "❌ Agent 任务出错", Body: body}
}

func formatPermission(now time.Time) Message {
	body := fmt.Sprintf(`## ⏸️ 等待权限确认

**状态:** Agent 需要您的权限才能继续执行

**时间:** %s

---
🔔 请及时处理，AI 正在等待您的响应`, now.Format(timeFormat))

	return Message{Title: "⏸️ Agent 需要权限", Body: body}
}

func formatQuestion(now time.Time) Message {
	body := fmt.Sprintf(`## ❓ 需要您的输入

**状态:** Agent 有一个问题需要您回答

**时间:** %s

---
💬 请查看终端并回答问题`, now.Format(timeFormat))

	return Message{Title: "❓ Agent 有问题要问", Body: body}
}

// truncateRunes caps s at n runes. Counting runes (not bytes) keeps the cut
// from splitting a multi-byte character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
