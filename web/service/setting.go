package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/ycr/usercenter/database"
	"github.com/ycr/usercenter/database/model"
	"github.com/ycr/usercenter/logger"
	"github.com/ycr/usercenter/util/common"
	"github.com/ycr/usercenter/util/random"
)

var defaultValueMap = map[string]string{
	"webListen":     "",
	"webPort":       "8080",
	"webBasePath":   "/api/",
	"webDomain":     "",
	"webCertFile":   "",
	"webKeyFile":    "",
	"sessionMaxAge": "60",
	"secret":        random.Seq(32),
	"allowOrigins":  "",
	"timeLocation":  "Local",
}

// SettingService reads and writes runtime settings kept in the settings
// table, falling back to defaultValueMap.
type SettingService struct{}

func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) SetListen(ip string) error {
	return s.setString("webListen", ip)
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	if port <= 0 || port > 65535 {
		return common.NewError("web port is not a valid port:", port)
	}
	return s.setInt("webPort", port)
}

// GetWebDomain returns the only Host the API answers to; empty accepts any.
func (s *SettingService) GetWebDomain() (string, error) {
	return s.getString("webDomain")
}

func (s *SettingService) SetWebDomain(domain string) error {
	return s.setString("webDomain", strings.TrimSpace(domain))
}

func (s *SettingService) GetCertFile() (string, error) {
	return s.getString("webCertFile")
}

func (s *SettingService) GetKeyFile() (string, error) {
	return s.getString("webKeyFile")
}

// SetCert stores the TLS certificate and key paths; empty paths serve
// plain HTTP.
func (s *SettingService) SetCert(certFile, keyFile string) error {
	return common.Combine(
		s.setString("webCertFile", certFile),
		s.setString("webKeyFile", keyFile),
	)
}

// GetSessionMaxAge returns the session lifetime in minutes.
func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) SetSessionMaxAge(minutes int) error {
	if minutes <= 0 {
		return common.NewError("session max age must be positive:", minutes)
	}
	return s.setInt("sessionMaxAge", minutes)
}

// GetSecret returns the session signing secret, persisting the generated
// default on first use so restarts keep existing sessions valid.
func (s *SettingService) GetSecret() ([]byte, error) {
	secret, err := s.getString("secret")
	if secret == defaultValueMap["secret"] {
		err := s.saveSetting("secret", secret)
		if err != nil {
			logger.Warning("save secret failed:", err)
		}
	}
	return []byte(secret), err
}

func (s *SettingService) SetBasePath(basePath string) error {
	return s.setString("webBasePath", normalizeBasePath(basePath))
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	return normalizeBasePath(basePath), nil
}

// GetAllowOrigins returns the origins allowed to call the API with
// credentials.
func (s *SettingService) GetAllowOrigins() ([]string, error) {
	value, err := s.getString("allowOrigins")
	if err != nil {
		return nil, err
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins, nil
}

func (s *SettingService) SetAllowOrigins(origins []string) error {
	return s.setString("allowOrigins", strings.Join(origins, ","))
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		defaultLocation := defaultValueMap["timeLocation"]
		logger.Errorf("location <%v> not exist, using default location: %v", l, defaultLocation)
		return time.LoadLocation(defaultLocation)
	}
	return location, nil
}

func normalizeBasePath(basePath string) string {
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}
