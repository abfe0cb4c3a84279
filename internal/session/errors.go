package session

import "github.com/ndhoang91/voicap/pkg/engine"

// errorMessages is the fixed, user-presentable vocabulary for engine faults.
// Raw engine codes never reach the host — every fault is translated here
// first. Messages are Vietnamese because that is the product's UI language.
var errorMessages = map[engine.ErrorCode]string{
	engine.ErrNotSupported:     "Trình duyệt không hỗ trợ nhận dạng giọng nói",
	engine.ErrPermissionDenied: "Bạn chưa cấp quyền sử dụng micro",
	engine.ErrNoSpeech:         "Không phát hiện giọng nói, vui lòng thử lại",
	engine.ErrAudioCapture:     "Không thể thu âm, vui lòng kiểm tra micro",
	engine.ErrNetwork:          "Lỗi mạng, không thể kết nối dịch vụ nhận dạng",
	engine.ErrUnknown:          "Đã xảy ra lỗi không xác định",
}

// MessageFor returns the localized message for an engine error code.
// Unrecognized codes fall back to the unknown-error message.
func MessageFor(code engine.ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return errorMessages[engine.ErrUnknown]
}
