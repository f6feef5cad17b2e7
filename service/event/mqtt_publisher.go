/*
 * @module service/event/mqtt_publisher
 * @description MQTT报告事件发布器，主题为 <topic>/<dataset_id>
 * @architecture 适配器模式 - 封装 paho MQTT 客户端
 * @dependencies github.com/eclipse/paho.mqtt.golang
 */

package event

import (
	"context"
	"datacensus-service/service/models"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttQoS            = 1
)

// mqttClient mqtt.Client 中发布器用到的部分
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher MQTT发布器
type MQTTPublisher struct {
	client mqttClient
	topic  string
}

// NewMQTTPublisher 连接 broker 并创建发布器
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		slog.Info("MQTT已连接", "broker", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("MQTT连接断开", "broker", broker, "error", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("MQTT连接超时: %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("MQTT连接失败: %w", err)
	}

	slog.Info("MQTT报告发布器初始化成功", "broker", broker, "topic", topic)
	return &MQTTPublisher{client: client, topic: topic}, nil
}

// Name 发布目标名称
func (p *MQTTPublisher) Name() string {
	return "mqtt"
}

// Topic 数据集对应的主题
func (p *MQTTPublisher) Topic(datasetID string) string {
	return fmt.Sprintf("%s/%s", p.topic, datasetID)
}

// Publish 发布报告事件
func (p *MQTTPublisher) Publish(ctx context.Context, report *models.CompletenessReport) error {
	payload, err := encodeReportEvent(report)
	if err != nil {
		return err
	}

	topic := p.Topic(report.DatasetID)
	token := p.client.Publish(topic, mqttQoS, false, payload)

	timeout := mqttPublishTimeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("发布MQTT消息超时: %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("发布MQTT消息失败: %w", err)
	}

	slog.Debug("报告事件已发布到MQTT", "topic", topic)
	return nil
}

// Close 断开连接，等待250ms让消息发送完成
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
