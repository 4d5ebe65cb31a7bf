package rsproto

import "fmt"

// ResponseCode is the broker's verdict on a correlated request.
type ResponseCode uint16

const (
	ResponseCodeOk                                ResponseCode = 0x01
	ResponseCodeStreamDoesNotExist                ResponseCode = 0x02
	ResponseCodeSubscriptionIdAlreadyExists       ResponseCode = 0x03
	ResponseCodeSubscriptionIdDoesNotExist        ResponseCode = 0x04
	ResponseCodeStreamAlreadyExists               ResponseCode = 0x05
	ResponseCodeStreamNotAvailable                ResponseCode = 0x06
	ResponseCodeSaslMechanismNotSupported         ResponseCode = 0x07
	ResponseCodeAuthenticationFailure             ResponseCode = 0x08
	ResponseCodeSaslError                         ResponseCode = 0x09
	ResponseCodeSaslChallenge                     ResponseCode = 0x0a
	ResponseCodeAuthenticationFailureLoopback     ResponseCode = 0x0b
	ResponseCodeVirtualHostAccessFailure          ResponseCode = 0x0c
	ResponseCodeUnknownFrame                      ResponseCode = 0x0d
	ResponseCodeFrameTooLarge                     ResponseCode = 0x0e
	ResponseCodeInternalError                     ResponseCode = 0x0f
	ResponseCodeAccessRefused                     ResponseCode = 0x10
	ResponseCodePreconditionFailed                ResponseCode = 0x11
	ResponseCodePublisherDoesNotExist             ResponseCode = 0x12
	ResponseCodeNoOffset                          ResponseCode = 0x13
)

// IsOk IsOk
func (r ResponseCode) IsOk() bool {
	return r == ResponseCodeOk
}

func (r ResponseCode) String() string {
	switch r {
	case ResponseCodeOk:
		return "Ok"
	case ResponseCodeStreamDoesNotExist:
		return "StreamDoesNotExist"
	case ResponseCodeSubscriptionIdAlreadyExists:
		return "SubscriptionIdAlreadyExists"
	case ResponseCodeSubscriptionIdDoesNotExist:
		return "SubscriptionIdDoesNotExist"
	case ResponseCodeStreamAlreadyExists:
		return "StreamAlreadyExists"
	case ResponseCodeStreamNotAvailable:
		return "StreamNotAvailable"
	case ResponseCodeSaslMechanismNotSupported:
		return "SaslMechanismNotSupported"
	case ResponseCodeAuthenticationFailure:
		return "AuthenticationFailure"
	case ResponseCodeSaslError:
		return "SaslError"
	case ResponseCodeSaslChallenge:
		return "SaslChallenge"
	case ResponseCodeAuthenticationFailureLoopback:
		return "AuthenticationFailureLoopback"
	case ResponseCodeVirtualHostAccessFailure:
		return "VirtualHostAccessFailure"
	case ResponseCodeUnknownFrame:
		return "UnknownFrame"
	case ResponseCodeFrameTooLarge:
		return "FrameTooLarge"
	case ResponseCodeInternalError:
		return "InternalError"
	case ResponseCodeAccessRefused:
		return "AccessRefused"
	case ResponseCodePreconditionFailed:
		return "PreconditionFailed"
	case ResponseCodePublisherDoesNotExist:
		return "PublisherDoesNotExist"
	case ResponseCodeNoOffset:
		return "NoOffset"
	default:
		return fmt.Sprintf("Unknown ResponseCode 0x%02x", uint16(r))
	}
}
