package rsproto

// Command keys of the RabbitMQ Stream protocol. Responses from the
// broker carry the request key with the high bit set.
const (
	CommandDeclarePublisher       uint16 = 0x0001
	CommandPublish                uint16 = 0x0002
	CommandPublishConfirm         uint16 = 0x0003
	CommandPublishError           uint16 = 0x0004
	CommandQueryPublisherSequence uint16 = 0x0005
	CommandDeletePublisher        uint16 = 0x0006
	CommandSubscribe              uint16 = 0x0007
	CommandDeliver                uint16 = 0x0008
	CommandCredit                 uint16 = 0x0009
	CommandStoreOffset            uint16 = 0x000a
	CommandQueryOffset            uint16 = 0x000b
	CommandUnsubscribe            uint16 = 0x000c
	CommandCreate                 uint16 = 0x000d
	CommandDelete                 uint16 = 0x000e
	CommandMetadata               uint16 = 0x000f
	CommandMetadataUpdate         uint16 = 0x0010
	CommandPeerProperties         uint16 = 0x0011
	CommandSaslHandshake          uint16 = 0x0012
	CommandSaslAuthenticate       uint16 = 0x0013
	CommandTune                   uint16 = 0x0014
	CommandOpen                   uint16 = 0x0015
	CommandClose                  uint16 = 0x0016
	CommandHeartbeat              uint16 = 0x0017
	CommandRoute                  uint16 = 0x0018
	CommandPartitions             uint16 = 0x0019
	CommandStreamStats            uint16 = 0x001c
)

// ResponseFlag marks an inbound frame as the response to a correlated
// request.
const ResponseFlag uint16 = 0x8000

// Version1 is the protocol version of every command in this core.
const Version1 uint16 = 1

const (
	KeySize           = 2
	VersionSize       = 2
	CorrelationIdSize = 4
	LenPrefixSize     = 4 // the outer u32 frame length

	headerSize           = KeySize + VersionSize
	correlatedHeaderSize = headerSize + CorrelationIdSize
)

func commandName(key uint16) string {
	switch key &^ ResponseFlag {
	case CommandDeclarePublisher:
		return "DeclarePublisher"
	case CommandPublish:
		return "Publish"
	case CommandPublishConfirm:
		return "PublishConfirm"
	case CommandPublishError:
		return "PublishError"
	case CommandQueryPublisherSequence:
		return "QueryPublisherSequence"
	case CommandDeletePublisher:
		return "DeletePublisher"
	case CommandSubscribe:
		return "Subscribe"
	case CommandDeliver:
		return "Deliver"
	case CommandCredit:
		return "Credit"
	case CommandStoreOffset:
		return "StoreOffset"
	case CommandQueryOffset:
		return "QueryOffset"
	case CommandUnsubscribe:
		return "Unsubscribe"
	case CommandCreate:
		return "Create"
	case CommandDelete:
		return "Delete"
	case CommandMetadata:
		return "Metadata"
	case CommandMetadataUpdate:
		return "MetadataUpdate"
	case CommandPeerProperties:
		return "PeerProperties"
	case CommandSaslHandshake:
		return "SaslHandshake"
	case CommandSaslAuthenticate:
		return "SaslAuthenticate"
	case CommandTune:
		return "Tune"
	case CommandOpen:
		return "Open"
	case CommandClose:
		return "Close"
	case CommandHeartbeat:
		return "Heartbeat"
	case CommandRoute:
		return "Route"
	case CommandPartitions:
		return "Partitions"
	case CommandStreamStats:
		return "StreamStats"
	default:
		return "Unknown"
	}
}

// CommandName returns a readable name for a wire key, response flag
// included.
func CommandName(key uint16) string {
	return commandName(key)
}
