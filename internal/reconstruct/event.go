package reconstruct

import (
	"encoding/json"
	"strings"

	"github.com/buger/jsonparser"
)

const (
	// DataPrefix 结构化负载的帧前缀
	DataPrefix = "data:"
	// DoneSentinel 流结束标记
	DoneSentinel = "[DONE]"
)

// Event 解析后的一行传输数据
// 只有 TextFragment、EndOfStream、Ignorable 三种
type Event interface {
	event()
}

// TextFragment 模型输出的一个片段
type TextFragment struct {
	Text string
}

// EndOfStream 显式的流结束控制标记
type EndOfStream struct{}

// Ignorable 无需处理的行 (空行、心跳、不含文本增量的结构化负载)
type Ignorable struct{}

func (TextFragment) event() {}
func (EndOfStream) event()  {}
func (Ignorable) event()    {}

var (
	_ Event = TextFragment{}
	_ Event = EndOfStream{}
	_ Event = Ignorable{}
)

// deltaPaths 按顺序尝试，取第一个非空字符串
var deltaPaths = [][]string{
	{"choices", "[0]", "delta", "content"},
	{"choices", "[0]", "delta", "text"},
}

// ParseLine 将一行传输数据解析为 Event
// 行可以是原始片段，也可以带 DataPrefix 帧前缀；
// 不是合法 JSON 的负载降级为原始文本片段，不会丢弃；
// 合法但不是对象的 JSON (数字、数组等) 没有文本增量，忽略
func ParseLine(line string) Event {
	if line == "" {
		return Ignorable{}
	}

	payload := strings.TrimSpace(line)
	if strings.HasPrefix(line, DataPrefix) {
		payload = strings.TrimSpace(line[len(DataPrefix):])
	}

	switch payload {
	case "":
		return Ignorable{}
	case DoneSentinel:
		return EndOfStream{}
	}

	data := []byte(payload)
	if !json.Valid(data) {
		return TextFragment{Text: payload}
	}
	if data[0] != '{' {
		return Ignorable{}
	}

	for _, path := range deltaPaths {
		if text, err := jsonparser.GetString(data, path...); err == nil && text != "" {
			return TextFragment{Text: text}
		}
	}
	return Ignorable{}
}
