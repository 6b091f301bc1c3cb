package events

const (
	TopicCartChanged       = "shop.cart.changed"
	TopicAccountRegistered = "shop.account.registered"
	TopicCheckoutRequested = "shop.checkout.requested"
	TopicCheckoutAccepted  = "shop.checkout.accepted"
	TopicCheckoutRejected  = "shop.checkout.rejected"
)

var topicByType = map[string]string{
	EventCartChanged:       TopicCartChanged,
	EventAccountRegistered: TopicAccountRegistered,
	EventCheckoutRequested: TopicCheckoutRequested,
	EventCheckoutAccepted:  TopicCheckoutAccepted,
	EventCheckoutRejected:  TopicCheckoutRejected,
}

// TopicFor returns the topic an event type is published on, "" if unknown.
func TopicFor(eventType string) string { return topicByType[eventType] }

// Partition key = profile_id, supaya semua event 1 pengunjung maintain urutan.
func PartitionKey(profileID string) []byte { return []byte(profileID) }
