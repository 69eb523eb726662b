package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// FetchFields 描述一次远端取数：资源类型、缓存 key 以及是否命中内存缓存。
func FetchFields(resource, key string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"action":    "fetch",
		"resource":  resource,
		"key":       key,
		"cache_hit": cacheHit,
	}
}

// RequestFields 提供 HTTP 接口层的请求字段。
func RequestFields(requestID, method, path string, status int) logrus.Fields {
	return logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"status":     status,
	}
}
