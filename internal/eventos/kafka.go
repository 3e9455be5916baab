package eventos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka publica todos os eventos em um único tópico, com o tipo no cabeçalho.
type Kafka struct {
	writer *kafka.Writer
}

func NovoKafka(brokers []string, topico string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: informe ao menos um broker")
	}
	if topico == "" {
		return nil, errors.New("kafka: tópico vazio")
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topico,
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
	}, nil
}

func (k *Kafka) Publicar(ctx context.Context, ev Evento) error {
	payload, err := codificar(ev)
	if err != nil {
		return fmt.Errorf("codificar evento %s: %w", ev.Tipo, err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(ev.Chave),
		Value:   payload,
		Time:    ev.Em,
		Headers: []kafka.Header{{Key: "tipo", Value: []byte(ev.Tipo)}},
	})
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Novo escolhe o publicador conforme a configuração: sem brokers, Nop.
func Novo(brokers []string, topico string) (Publicador, error) {
	if len(brokers) == 0 {
		return Nop{}, nil
	}
	return NovoKafka(brokers, topico)
}
