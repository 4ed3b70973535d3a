package rabbitmq

import "pos-service/internal/infra"

var _ infra.Publisher = (*Publisher)(nil)
