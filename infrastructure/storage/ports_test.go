package storage

import "rental-chat/contract"

var (
	_ contract.ChatReader        = (*ChatRepository)(nil)
	_ contract.NotificationStore = (*NotificationRepository)(nil)
	_ contract.AttemptRecorder   = (*DeliveryRepository)(nil)
)
