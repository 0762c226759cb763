package ssrp

// InstanceRequest builds a CLNT_UCAST_INST datagram for name.
//
// The name is copied verbatim and NUL terminated. Embedded NUL bytes and
// datagram size limits are the caller's concern.
func InstanceRequest(name string) []byte {
	buf := make([]byte, 0, len(name)+2)
	buf = append(buf, byte(TagClientUnicastInst))
	buf = append(buf, name...)
	buf = append(buf, 0x00)
	return buf
}

// BrowseAllRequest builds a CLNT_UCAST_EX datagram.
func BrowseAllRequest() []byte {
	return []byte{byte(TagClientUnicastEx)}
}
