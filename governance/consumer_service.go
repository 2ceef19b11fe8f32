package governance

import (
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/regsync"
)

// ConsumerService queries consumers. Consumers register themselves, so
// there are no write operations.
type ConsumerService struct {
	reader Reader
}

// NewConsumerService creates a ConsumerService.
func NewConsumerService(reader Reader) *ConsumerService {
	return &ConsumerService{reader: reader}
}

func (s *ConsumerService) filter(p regsync.Predicates) map[int64]*record.Record {
	return s.reader.FilterByCategory(record.CategoryConsumers, p)
}

func (s *ConsumerService) FindAll() []*Consumer { return ToConsumers(s.filter(nil)) }

func (s *ConsumerService) Find(q Query) []*Consumer {
	return ToConsumers(s.filter(q.predicates()))
}

func (s *ConsumerService) FindByService(service string) []*Consumer {
	return ToConsumers(s.filter(regsync.ByService(service)))
}

// FindByAddress matches the consumer host:port, which is the host alone
// for consumers announced without a port.
func (s *ConsumerService) FindByAddress(address string) []*Consumer {
	return ToConsumers(s.filter(regsync.ByAddress(address)))
}

func (s *ConsumerService) FindByApplication(application string) []*Consumer {
	return ToConsumers(s.filter(regsync.ByApplication(application)))
}

// FindByID returns the consumer with id, or a NotFound error.
func (s *ConsumerService) FindByID(id int64) (*Consumer, error) {
	return find(s.reader, record.CategoryConsumers, id, "consumer", ToConsumer)
}

func (s *ConsumerService) FindServices() []string {
	return distinct(s.filter(nil), serviceKeyOf)
}

func (s *ConsumerService) FindAddresses() []string {
	return distinct(s.filter(nil), hostOf)
}

func (s *ConsumerService) FindApplications() []string {
	return distinct(s.filter(nil), applicationOf)
}

func (s *ConsumerService) FindApplicationsByService(service string) []string {
	return distinct(s.filter(regsync.ByService(service)), applicationOf)
}

func (s *ConsumerService) FindServicesByApplication(application string) []string {
	return distinct(s.filter(regsync.ByApplication(application)), serviceKeyOf)
}
